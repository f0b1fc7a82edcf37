// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package waveshare7in5v2

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// busyPollInterval is how often the busy line is sampled while the panel is
// mid-refresh.
const busyPollInterval = 10 * time.Millisecond

// errorHandler wraps the pin and bus operations of a Dev with sticky error
// management: after the first failure all further operations are skipped and
// the error is reported once at the end of the sequence.
type errorHandler struct {
	d   *Dev
	err error
}

func (eh *errorHandler) rstOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.rst.Out(l)
}

func (eh *errorHandler) dcOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.dc.Out(l)
}

func (eh *errorHandler) csOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.cs.Out(l)
}

func (eh *errorHandler) cTx(w []byte, r []byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.c.Tx(w, r)
}

func (eh *errorHandler) sendCommand(cmd byte) {
	if eh.err != nil {
		return
	}

	eh.dcOut(gpio.Low)
	eh.csOut(gpio.Low)
	eh.cTx([]byte{cmd}, nil)
	eh.csOut(gpio.High)
}

func (eh *errorHandler) sendData(data []byte) {
	if eh.err != nil {
		return
	}

	eh.dcOut(gpio.High)
	eh.csOut(gpio.Low)
	eh.cTx(data, nil)
	eh.csOut(gpio.High)
}

func (eh *errorHandler) sendByte(data byte) {
	eh.sendData([]byte{data})
}

// waitUntilIdle polls the busy line until the controller releases it or the
// configured timeout elapses. The line is active low: the panel drives it low
// for the whole analog refresh cycle and no command may be issued during that
// window. A timeout means a non-responsive or miswired panel; the sequence is
// aborted with ErrTimeout and the panel state is unspecified.
func (eh *errorHandler) waitUntilIdle() {
	if eh.err != nil {
		return
	}

	// The controller only updates the busy output after a status poke.
	eh.sendCommand(getStatus)
	if eh.err != nil {
		return
	}

	deadline := time.Now().Add(eh.d.opts.Timeout)

	for eh.d.busy.Read() == gpio.Low {
		if time.Now().After(deadline) {
			eh.err = ErrTimeout
			return
		}
		time.Sleep(busyPollInterval)
	}
}
