// Package tcauto owns the boundary to the TcAutomation.exe CLI.
//
// Ownership boundary:
// - locating the executable among candidate install paths
// - translating named tool arguments into command lines
// - decoding and rendering the executable's JSON payloads
//
// tcauto never spawns processes; that is the supervisor's concern.
package tcauto
