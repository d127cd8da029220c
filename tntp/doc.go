// Package tntp reads and writes the TNTP plain-text conventions used by the
// TransportationNetworks test-problem collection.
//
// Two readers cover the inputs:
//
//   - ReadNetwork parses a *_net.tntp file: an angle-bracket metadata header
//     terminated by <END OF METADATA>, followed by one whitespace-separated
//     link record per line (tail, head, capacity, length, free-flow time,
//     BPR b, BPR power, speed, toll, link type), each terminated by ';'.
//   - ReadTrips parses a *_trips.tntp file: the same metadata header, then
//     per-origin blocks ("Origin  <id>") listing "dest : volume;" entries.
//
// Two writers cover the outputs consumed by reporting collaborators:
//
//   - WriteFlows emits the solved link flows and travel times in the
//     tab-separated layout of the collection's *_flow.tntp files.
//   - WriteGaps emits the per-iteration convergence trace as CSV
//     (elapsed seconds, relative gap), ready for plotting.
//
// Both readers validate record shape and numeric fields and report the line
// number of the first offending record; ingestion errors wrap ErrBadRecord
// or ErrBadMetadata for errors.Is branching.
package tntp
