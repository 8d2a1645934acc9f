package audit

import "embed"

// migrations is an embedded filesystem holding the SQL migration files for
// the audit trail database, following the same embed-and-apply-at-startup
// pattern as the teacher's internal/db package.
//
//go:embed migrations/*.sql
var migrations embed.FS
