package module

import "oppwatch/internal/services/report/domain"

// Ports defines the report module ports exposed via the registry
type Ports struct {
	Runner domain.RunnerPort
	Reader domain.ReaderPort
}
