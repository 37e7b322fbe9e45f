package scaling

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// ResourceKind identifies the orchestration resource a group scales.
type ResourceKind string

// Supported resource kinds.
const (
	KindDeployment ResourceKind = "deployment"
	KindJob        ResourceKind = "job"
)

// groupFieldCount is the exact number of fields in one scaling-group record.
const groupFieldCount = 7

// GroupSpec is the immutable scaling configuration for one workload group.
type GroupSpec struct {
	MinPods      int
	MaxPods      int
	KeysPerPod   float64
	Namespace    string
	Kind         ResourceKind
	GroupKey     string
	ResourceName string
}

// ParseGroups parses the delimited scaling-group configuration string.
// Records are separated by recordDelim, fields within a record by fieldDelim,
// in the order: minPods, maxPods, keysPerPod, namespace, kind, groupKey,
// resourceName.
//
// Identical delimiters are rejected before any record is inspected. A record
// with the wrong field count or a non-numeric numeric field is logged and
// skipped; an unrecognized resource kind aborts parsing with an error. The
// asymmetry is intentional: a garbled record is operator noise, a bad kind
// means the configuration scheme itself is wrong.
func ParseGroups(raw, recordDelim, fieldDelim string) ([]GroupSpec, error) {
	if recordDelim == fieldDelim {
		return nil, fmt.Errorf("scaling: record and field delimiters must differ, both are %q", recordDelim)
	}

	var specs []GroupSpec
	for _, record := range strings.Split(raw, recordDelim) {
		if record == "" {
			continue
		}

		fields := strings.Split(record, fieldDelim)
		if len(fields) != groupFieldCount {
			slog.Warn("skipping scaling group record with wrong field count",
				"record", record, "fields", len(fields), "want", groupFieldCount)
			continue
		}

		kind := ResourceKind(strings.ToLower(fields[4]))
		if kind != KindDeployment && kind != KindJob {
			return nil, fmt.Errorf("scaling: unrecognized resource kind %q in record %q", fields[4], record)
		}

		minPods, err := strconv.Atoi(fields[0])
		if err != nil {
			slog.Warn("skipping scaling group record with non-numeric minPods",
				"record", record, "value", fields[0])
			continue
		}
		maxPods, err := strconv.Atoi(fields[1])
		if err != nil {
			slog.Warn("skipping scaling group record with non-numeric maxPods",
				"record", record, "value", fields[1])
			continue
		}
		keysPerPod, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			slog.Warn("skipping scaling group record with non-numeric keysPerPod",
				"record", record, "value", fields[2])
			continue
		}

		if minPods < 0 || maxPods < minPods {
			slog.Warn("skipping scaling group record with invalid bounds",
				"record", record, "min", minPods, "max", maxPods)
			continue
		}
		if keysPerPod <= 0 {
			slog.Warn("skipping scaling group record with non-positive keysPerPod",
				"record", record, "value", keysPerPod)
			continue
		}

		specs = append(specs, GroupSpec{
			MinPods:      minPods,
			MaxPods:      maxPods,
			KeysPerPod:   keysPerPod,
			Namespace:    fields[3],
			Kind:         kind,
			GroupKey:     fields[5],
			ResourceName: fields[6],
		})
	}

	return specs, nil
}
