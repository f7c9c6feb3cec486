// Package mocks holds mockery-generated mocks for the ports (see internal/ports/.mockery.yaml)
// plus the recording Logger and settable Clock used across adapter tests.
package mocks
