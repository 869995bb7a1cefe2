/*
Copyright © 2024 the regionmask authors.
This file is part of regionmask.

regionmask is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

regionmask is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with regionmask.  If not, see <http://www.gnu.org/licenses/>.
*/

package regionmask

import "fmt"

// A ConfigurationError indicates that the bundled region catalog (or a
// caller-supplied replacement source) is missing or unparsable. It is
// fatal: the catalog ships with the package, so a failure to read it
// cannot be retried away.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("regionmask: region catalog: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// An InvalidArgumentError indicates that a caller-supplied value cannot
// be used: a template dataset lacking the required grid metadata, or a
// region set too large to code.
type InvalidArgumentError struct {
	Arg string
	Err error
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("regionmask: invalid %s: %v", e.Arg, e.Err)
}

func (e *InvalidArgumentError) Unwrap() error { return e.Err }

// An InternalConsistencyError indicates a violated invariant within this
// package. It should never occur; if it does, it is a defect to report,
// not a condition to recover from.
type InternalConsistencyError struct {
	Msg string
}

func (e *InternalConsistencyError) Error() string {
	return "regionmask: internal consistency: " + e.Msg
}

// An ErrorObserver is notified of every error a Masker operation returns.
// Callers that want error telemetry register one with WithErrorObserver;
// there is no global hook.
type ErrorObserver interface {
	ObserveError(err error)
}
