// Package mapgen defines core types shared across the map generation
// subsystems: job records, crop geometry, collaborator interfaces, and the
// error taxonomy surfaced to callers.
package mapgen
