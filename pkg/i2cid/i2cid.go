package i2cid

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
)

// DefaultPaths lists the standard locations for a local address database.
// Each file holds one entry per line, "ADDR  Name", with ADDR in hex
// ("0x68" or "68"); '#' starts a comment.
var DefaultPaths = []string{
	"/usr/share/hwdata/i2c.ids",
	"/usr/local/share/i2c.ids",
}

// builtin names the devices most commonly assigned to each 7-bit address.
var builtin = map[uint16]string{
	0x0C: "AK8975/AK8963 magnetometer",
	0x1D: "ADXL345/LIS3DH accelerometer",
	0x1E: "HMC5883L magnetometer",
	0x20: "PCF8574/MCP23017 port expander",
	0x27: "PCF8574 LCD backpack",
	0x29: "VL53L0X/TSL2591 light or ranging sensor",
	0x39: "APDS-9960 gesture sensor",
	0x3C: "SSD1306 OLED display",
	0x40: "INA219 current monitor, HTU21D hygrometer",
	0x48: "ADS1115 ADC, TMP102 thermometer",
	0x50: "24Cxx EEPROM",
	0x51: "24Cxx EEPROM, PCF8563 RTC",
	0x53: "ADXL345 accelerometer (alt)",
	0x57: "24Cxx EEPROM, MAX30102 pulse oximeter",
	0x5A: "MPR121 touch controller, CCS811 gas sensor",
	0x68: "DS1307/DS3231 RTC, MPU-6050 IMU",
	0x69: "MPU-6050 IMU (alt), L3G4200D gyroscope",
	0x76: "BMP280/BME280 barometer",
	0x77: "BMP180/BME680 barometer",
}

// Database resolves addresses to device names. The zero value is not
// usable; construct with [New] or [NewWithPaths].
type Database struct {
	mu      sync.RWMutex
	entries map[uint16]string // Loaded entries, shadow builtin
	loaded  bool
	paths   []string
}

// New creates a database that searches [DefaultPaths] on Load.
func New() *Database {
	return NewWithPaths(DefaultPaths)
}

// NewWithPaths creates a database that searches the specified paths on Load.
func NewWithPaths(paths []string) *Database {
	return &Database{
		entries: make(map[uint16]string),
		paths:   paths,
	}
}

// Load parses the first database file found among the search paths. It is
// idempotent; subsequent calls do nothing once loaded.
//
// Returns true if a database file was loaded (or already loaded), false if
// none could be found. The built-in table works either way.
func (db *Database) Load() bool {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.loaded {
		return true
	}

	for _, path := range db.paths {
		file, err := os.Open(path)
		if err != nil {
			continue
		}
		db.parse(file)
		file.Close()
		db.loaded = true
		return true
	}

	// Mark as loaded even when not found to prevent repeated searches.
	db.loaded = true
	return false
}

// parse reads "ADDR  Name" lines into the entry map.
func (db *Database) parse(file *os.File) {
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		if len(fields) != 2 {
			continue
		}
		addrStr := strings.TrimPrefix(strings.ToLower(fields[0]), "0x")
		addr, err := strconv.ParseUint(addrStr, 16, 16)
		if err != nil || addr > 0x7F {
			continue
		}
		name := strings.TrimSpace(fields[1])
		if name == "" {
			continue
		}
		db.entries[uint16(addr)] = name
	}
}

// Add registers a name for an address, shadowing the built-in table.
func (db *Database) Add(addr uint16, name string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.entries[addr] = name
}

// Lookup returns the device name(s) associated with addr, or "" when the
// address is unlisted. Loaded and added entries shadow the built-in table.
func (db *Database) Lookup(addr uint16) string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if name, ok := db.entries[addr]; ok {
		return name
	}
	return builtin[addr]
}
