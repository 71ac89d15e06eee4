package internal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestMethodName(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"Standard function", "github.com/zhengshuai-xiao/XferS/pkg/transfer.(*Engine).Upload", "Upload"},
		{"Method with pointer receiver", "github.com/zhengshuai-xiao/XferS/pkg/transfer.(*Engine).writeChunk", "writeChunk"},
		{"Anonymous function", "github.com/zhengshuai-xiao/XferS/pkg/objstore.(*SegmentBackend).Stat.func1", "Stat"},
		{"Simple function", "main.main", "main"},
		{"No package path", "MyFunction", "MyFunction"},
		{"Empty string", "", ""},
		{"Just a dot", ".", "."},
		{"Trailing dot", "some.package.", "package"},
		{"Leading dot", ".some.package", "package"},
		{"Several trailing dots", "transfer.Upload..", "Upload"},
		{"Only dots", "...", "..."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := MethodName(tc.input)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.TraceLevel, ParseLogLevel("trace"))
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel("warn"))
	assert.Equal(t, logrus.ErrorLevel, ParseLogLevel("error"))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("info"))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("bogus"))
}

func TestLoggerFormat(t *testing.T) {
	l := GetLogger("logger_test")
	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.colorful = false
	l.Level = logrus.InfoLevel

	l.Infof("checkpoint saved at %d", 4096)
	l.Debugf("should be filtered")

	out := buf.String()
	assert.Contains(t, out, "logger_test[")
	assert.Contains(t, out, "<INFO>: checkpoint saved at 4096")
	assert.Contains(t, out, "TestLoggerFormat@logger_test.go:")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestSetLogID(t *testing.T) {
	l := GetLogger("logid_test")
	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.Level = logrus.InfoLevel

	SetLogID("[run-1] ")
	defer SetLogID("")
	l.Info("hello")
	assert.True(t, strings.HasPrefix(buf.String(), "[run-1] "))
}
