// Package factory instantiates pluggable modules, such as metrics sinks, from
// configuration. A module is selected by its type name and receives the raw
// "conf" map of its configuration entry, which Decode turns into a typed
// struct:
//
//	sinks:
//	  - type: influx
//	    conf:
//	      url: http://localhost:8086
//	      bucket: bms
package factory
