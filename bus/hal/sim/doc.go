// Package sim implements hal.Controller as a software-simulated I2C bus.
//
// The simulated controller executes transfers against in-memory slave
// models and raises completion interrupts from a dedicated event goroutine,
// which stands in for interrupt context. It is the test vehicle for the bus
// core and for anything built on top of it; no hardware is required.
//
// Slave models implement the [Slave] interface. [MemSlave] models a
// register-file device (pointer write followed by data, the common EEPROM
// layout). [NackSlave] models a device that NACKs mid-transfer, for fault
// injection. Addressing a slave that was never added reports
// pkg.EventErrorNoSlave.
//
//	bus := sim.New()
//	defer bus.Close()
//	bus.AddSlave(0x50, sim.NewMemSlave(256))
package sim
