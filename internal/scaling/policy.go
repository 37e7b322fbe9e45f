package scaling

// DesiredReplicas computes the target replica count for one workload group.
//
// Demand is backlog divided by keysPerPod, rounded down, then clamped to
// [minPods, maxPods]. When the clamped demand lands strictly inside the
// bounds but below the current count, the current count wins: while demand
// is nonzero the scaler never shrinks a group that is already within bounds,
// which keeps the loop from oscillating as the backlog drains. Demand of
// zero still scales the group down to minPods.
func DesiredReplicas(backlog int, keysPerPod float64, minPods, maxPods, current int) int {
	desired := 0
	if keysPerPod > 0 {
		desired = int(float64(backlog) / keysPerPod)
	}

	switch {
	case desired > maxPods:
		desired = maxPods
	case desired < minPods:
		desired = minPods
	case desired > 0 && desired < current && current <= maxPods:
		desired = current
	}
	return desired
}
