package contract

import (
	"context"

	"github.com/huangsam/pilotkpi/schema"
	"github.com/stretchr/testify/mock"
)

// MockRecordSource is a testify mock for RecordSource.
type MockRecordSource struct {
	mock.Mock
}

var _ RecordSource = &MockRecordSource{} // Compile-time check

// Format implements the RecordSource interface.
func (m *MockRecordSource) Format() schema.SourceFormat {
	ret := m.Called()
	format, _ := ret.Get(0).(schema.SourceFormat)
	return format
}

// Path implements the RecordSource interface.
func (m *MockRecordSource) Path() string {
	ret := m.Called()
	return ret.String(0)
}

// Sheets implements the RecordSource interface.
func (m *MockRecordSource) Sheets(ctx context.Context) ([]string, error) {
	ret := m.Called(ctx)
	sheets, _ := ret.Get(0).([]string)
	return sheets, ret.Error(1)
}

// ReadTable implements the RecordSource interface.
func (m *MockRecordSource) ReadTable(ctx context.Context, sheet string) (schema.Table, error) {
	ret := m.Called(ctx, sheet)
	table, _ := ret.Get(0).(schema.Table)
	return table, ret.Error(1)
}

// Close implements the RecordSource interface.
func (m *MockRecordSource) Close() error {
	ret := m.Called()
	return ret.Error(0)
}
