// Package scaphandre decodes the power-consumption stream written by
// `scaphandre json` and splits it into measurement iterations.
package scaphandre

// Report is one top-level object of the stream.
type Report struct {
	Host      *Host      `json:"host"`
	Consumers []Consumer `json:"consumers"`
}

type Host struct {
	Consumption float64 `json:"consumption"`
	Timestamp   float64 `json:"timestamp"`
}

// Consumer is a process ranked among the top power consumers.
type Consumer struct {
	Exe         string     `json:"exe"`
	Cmdline     string     `json:"cmdline"`
	Pid         int        `json:"pid"`
	Consumption float64    `json:"consumption"`
	Timestamp   float64    `json:"timestamp"`
	Container   *Container `json:"container"`
}

type Container struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Runtime string `json:"runtime"`
}

// ContainerName is empty for processes outside containers.
func (c Consumer) ContainerName() string {
	if c.Container == nil {
		return ""
	}
	return c.Container.Name
}
