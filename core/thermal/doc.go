// Package thermal implements the edge-triggered thermal controller of a
// battery pack.
//
// A CellArray holds the per-cell temperatures. Decide reduces them to a
// target model.ThermalState and Controller.Monitor actuates only when that
// target differs from the current state. The controller reads cells but never
// writes them; temperature updates come from outside through
// CellArray.SetTemperatures or CellArray.Apply.
package thermal
