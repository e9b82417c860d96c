// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dma350

// run starts the programmed command according to the execution type.
func run(c Channel, exec ExecType) (err error) {
	switch exec {
	case ExecIRQ:
		c.SetDoneInterrupt(true)
		c.Enable()

		if c.Status().Err() {
			return ErrCommand
		}
	case ExecStartOnly:
		c.SetDoneInterrupt(false)
		c.Enable()

		if c.Status().Err() {
			return ErrCommand
		}
	case ExecBlocking:
		c.SetDoneInterrupt(false)
		c.Enable()

		if status := c.Wait(); !status.Done() || status.Err() {
			return ErrCommand
		}
	default:
		return ErrInvalidExecType
	}

	return
}

// start checks channel readiness and execution type, as done on entry of
// every command.
func start(c Channel, exec ExecType) (err error) {
	if err = c.Ready(); err != nil {
		return
	}

	if !exec.valid() {
		return ErrInvalidExecType
	}

	return
}
