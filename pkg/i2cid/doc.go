// Package i2cid maps 7-bit I2C addresses to candidate device names.
//
// Unlike USB, I2C carries no vendor or product identity on the wire; the
// only clue a bus scan yields is the address a device ACKed. The package
// ships a built-in table of commonly assigned addresses and can overlay
// entries from a local database file, so scanners can label what they find:
//
//	db := i2cid.New()
//	db.Load()
//	name := db.Lookup(0x68) // "DS1307/DS3231 RTC, MPU-6050 IMU"
//
// Address assignments are conventions, not guarantees. A lookup names the
// devices most often found at an address, and several devices legitimately
// share one.
package i2cid
