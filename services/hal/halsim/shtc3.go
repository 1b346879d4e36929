package halsim

import (
	"sync"

	"envmon-go/x/mathx"
)

// SHTC3Address is the sensor's fixed I2C address.
const SHTC3Address = 0x70

// SHTC3 emulates the measurement commands of a Sensirion SHTC3. Sleep and
// wake-up are accepted and tracked but do not gate reads.
type SHTC3 struct {
	mu      sync.Mutex
	asleep  bool
	out     [6]byte
	wakeups int
	Source  func() (tempC, humPct float32)
}

func NewSHTC3(src func() (float32, float32)) *SHTC3 {
	return &SHTC3{Source: src, asleep: true}
}

func (s *SHTC3) Tx(w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(w) >= 2 {
		switch cmd := uint16(w[0])<<8 | uint16(w[1]); cmd {
		case 0x3517:
			s.asleep = false
			s.wakeups++
		case 0xB098:
			s.asleep = true
		case 0x7866, 0x7CA2, 0x609C, 0x6458:
			s.latch(true)
		case 0x58E0, 0x5C24, 0x401A, 0x44DE:
			s.latch(false)
		}
	}
	copy(r, s.out[:])
	return nil
}

// Wakeups counts wake-up commands.
func (s *SHTC3) Wakeups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wakeups
}

func (s *SHTC3) Asleep() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.asleep
}

func (s *SHTC3) latch(tempFirst bool) {
	tc, h := s.Source()
	tr := uint16((mathx.Clamp(tc, -45, 130) + 45) * 65536 / 175)
	hr := uint16(mathx.Clamp(h, 0, 99.99) * 65536 / 100)
	a, b := tr, hr
	if !tempFirst {
		a, b = hr, tr
	}
	s.out = [6]byte{byte(a >> 8), byte(a), 0, byte(b >> 8), byte(b), 0}
	s.out[2] = sensirionCRC(s.out[0:2])
	s.out[5] = sensirionCRC(s.out[3:5])
}

// sensirionCRC is CRC-8, polynomial 0x31, init 0xFF.
func sensirionCRC(p []byte) byte {
	crc := byte(0xFF)
	for _, b := range p {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
