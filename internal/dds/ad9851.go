// Package dds drives an Analog Devices AD9851 frequency synthesizer over
// three GPIO-style pins in serial-load mode.
//
// The package is pure protocol: it computes the 40-bit configuration frame
// for a requested output frequency and bit-bangs it through an injected
// Pin interface. Wiring the pins to real hardware (firmata, sysfs GPIO,
// a bench simulator) is the caller's concern, which also makes the
// protocol fully testable without a device.
package dds

import "fmt"

// Pin is a single digital output line.
type Pin interface {
	// Set drives the line high or low.
	Set(high bool) error
}

// DefaultRefClock is the reference clock of a stock AD9851 module with
// the 6x multiplier enabled: 30 MHz crystal times six.
const DefaultRefClock = 180_000_000

// controlByte enables the 6x reference clock multiplier. The remaining
// control bits (power-down, phase) stay zero.
const controlByte = 0x01

// frameBits is the serial-load frame length: 32 tuning-word bits plus the
// 8-bit control byte, shifted in LSB first.
const frameBits = 40

// AD9851 holds the pin assignment and reference clock for one device.
type AD9851 struct {
	data, clk, fup Pin
	refClock       uint64
}

// Option configures an AD9851.
type Option func(*AD9851)

// WithRefClock overrides the reference clock frequency in Hz.
// Default DefaultRefClock.
func WithRefClock(hz uint64) Option {
	return func(d *AD9851) { d.refClock = hz }
}

// New creates a driver for a device wired to the given data, clock, and
// frequency-update pins.
func New(data, clk, fup Pin, opts ...Option) *AD9851 {
	d := &AD9851{
		data:     data,
		clk:      clk,
		fup:      fup,
		refClock: DefaultRefClock,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// TuningWord computes the 32-bit phase accumulator increment for the
// requested output frequency: word = freq * 2^32 / refClock.
func TuningWord(freqHz, refClockHz uint64) uint32 {
	return uint32((freqHz << 32) / refClockHz)
}

// Tune programs the device to output the requested frequency: it shifts
// in the 40-bit frame and pulses the frequency-update pin to latch it.
//
// Frequencies at or above the Nyquist limit (half the reference clock)
// are rejected.
func (d *AD9851) Tune(freqHz uint64) error {
	if freqHz >= d.refClock/2 {
		return fmt.Errorf("frequency %d Hz exceeds Nyquist limit of %d Hz", freqHz, d.refClock/2)
	}

	frame := uint64(controlByte)<<32 | uint64(TuningWord(freqHz, d.refClock))
	if err := d.shiftIn(frame); err != nil {
		return err
	}

	return d.pulse(d.fup)
}

// shiftIn clocks the frame out LSB first, one rising edge per bit.
func (d *AD9851) shiftIn(frame uint64) error {
	for i := 0; i < frameBits; i++ {
		bit := frame>>uint(i)&1 == 1
		if err := d.data.Set(bit); err != nil {
			return fmt.Errorf("data pin: %w", err)
		}
		if err := d.pulse(d.clk); err != nil {
			return err
		}
	}
	return nil
}

// pulse raises and immediately lowers a pin.
func (d *AD9851) pulse(p Pin) error {
	if err := p.Set(true); err != nil {
		return fmt.Errorf("pulse high: %w", err)
	}
	if err := p.Set(false); err != nil {
		return fmt.Errorf("pulse low: %w", err)
	}
	return nil
}
