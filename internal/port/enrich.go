package port

// Enrich merges raw socket records with per-process metadata into the
// final entry list. It is pure and performs no I/O.
//
// Records are visited in their original order and deduplicated by
// (pid, port): a process bound to the same port over both IPv4 and IPv6
// yields exactly one entry, the first occurrence winning so that the
// tool's ordering is preserved. Missing map entries fall back to the
// defaults: UnknownDirectory, the raw command, parent PID 0 and an
// empty parent command.
func Enrich(records []RawRecord, dirs map[int]string, procs map[int]ProcessDescriptor, parents map[int]string) []PortEntry {
	type key struct {
		pid  int
		port int
	}
	seen := make(map[key]struct{}, len(records))

	var entries []PortEntry
	for _, rec := range records {
		k := key{rec.PID, rec.Port}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		entry := PortEntry{
			PID:       rec.PID,
			Port:      rec.Port,
			Command:   rec.Command,
			Directory: UnknownDirectory,
			Protocol:  rec.Protocol,
		}
		if dir, ok := dirs[rec.PID]; ok && dir != "" {
			entry.Directory = dir
		}
		if desc, ok := procs[rec.PID]; ok {
			if desc.Command != "" {
				entry.Command = desc.Command
			}
			entry.ParentPID = desc.ParentPID
		}
		if entry.ParentPID > 0 {
			entry.ParentCommand = parents[entry.ParentPID]
		}
		entries = append(entries, entry)
	}
	return entries
}

// distinctPIDs returns the deduplicated PID set of the records, in
// first-seen order. It bounds the batched enrichment calls: one
// invocation per step regardless of how many sockets are listening.
func distinctPIDs(records []RawRecord) []int {
	seen := make(map[int]struct{}, len(records))
	var pids []int
	for _, rec := range records {
		if _, ok := seen[rec.PID]; ok {
			continue
		}
		seen[rec.PID] = struct{}{}
		pids = append(pids, rec.PID)
	}
	return pids
}

// distinctParentPIDs returns the deduplicated non-zero parent PID set
// referenced by the descriptors, in first-seen order over the given
// PID list.
func distinctParentPIDs(pids []int, procs map[int]ProcessDescriptor) []int {
	seen := make(map[int]struct{})
	var parents []int
	for _, pid := range pids {
		desc, ok := procs[pid]
		if !ok || desc.ParentPID <= 0 {
			continue
		}
		if _, dup := seen[desc.ParentPID]; dup {
			continue
		}
		seen[desc.ParentPID] = struct{}{}
		parents = append(parents, desc.ParentPID)
	}
	return parents
}
