package ports

import "multiparty-params/internal/types"

// JobSpecPort loads a job declaration document.
type JobSpecPort interface {
	LoadJob(path string) (types.JobDeclaration, error)
}
