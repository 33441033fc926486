package wm

// BuildMRU derives a most-recently-used process ordering from two window
// snapshots: onScreen must be ordered front to back, all may be in any order.
//
// Rules: walk the on-screen snapshot in z-order appending each pid the first
// time it is seen; then append pids that only have off-screen windows and
// belong to hiddenPIDs, in encounter order; processes in extraPIDs with zero
// windows come last. ownPID is skipped throughout.
func BuildMRU(onScreen, all []WindowInfo, hiddenPIDs map[int]bool, extraPIDs []int, ownPID int) []int {
	seen := make(map[int]bool)
	var mru []int

	appendPID := func(pid int) {
		if pid == ownPID || seen[pid] {
			return
		}
		seen[pid] = true
		mru = append(mru, pid)
	}

	for _, w := range onScreen {
		appendPID(w.PID)
	}

	for _, w := range all {
		if w.OnScreen || !hiddenPIDs[w.PID] {
			continue
		}
		appendPID(w.PID)
	}

	for _, pid := range extraPIDs {
		appendPID(pid)
	}

	return mru
}

// WindowsByPID groups windows by owning process, preserving input order
// within each group.
func WindowsByPID(windows []WindowInfo) map[int][]WindowInfo {
	grouped := make(map[int][]WindowInfo)
	for _, w := range windows {
		grouped[w.PID] = append(grouped[w.PID], w)
	}
	return grouped
}

// FilterBySize drops windows whose frame is not strictly larger than min in
// both dimensions. A min x min window is excluded.
func FilterBySize(windows []WindowInfo, min int) []WindowInfo {
	var out []WindowInfo
	for _, w := range windows {
		if w.Frame.Width > min && w.Frame.Height > min {
			out = append(out, w)
		}
	}
	return out
}

// PruneToLive returns the ids present in live, preserving the order of ids.
// Used to opportunistically drop references to closed windows.
func PruneToLive(ids []WindowID, live []WindowInfo) []WindowID {
	liveSet := make(map[WindowID]bool, len(live))
	for _, w := range live {
		liveSet[w.ID] = true
	}
	var out []WindowID
	for _, id := range ids {
		if liveSet[id] {
			out = append(out, id)
		}
	}
	return out
}
