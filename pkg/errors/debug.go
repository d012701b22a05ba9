package errors

import stdErrors "errors"

// ChainDump captures the unwrap chain for log output.
type ChainDump struct {
	TopMessage string
	Code       string
	Chain      []string
}

// Dump walks the error chain so request logs can show every layer.
func Dump(err error) ChainDump {
	dump := ChainDump{}
	if err == nil {
		return dump
	}
	dump.TopMessage = err.Error()
	if typed := As(err); typed != nil {
		dump.Code = string(typed.Code())
	}
	for cur := err; cur != nil; cur = stdErrors.Unwrap(cur) {
		dump.Chain = append(dump.Chain, cur.Error())
	}
	return dump
}
