package logger

const (
	Main       = "main"
	HAL        = "hal"
	Southbound = "sb"
	ConfDB     = "confdb"
	Events     = "events"
	Northbound = "nb"
	Exporter   = "exporter"
	Monitor    = "mond"
	Bootstrap  = "bootstrap"
	Shell      = "shell"
)
