package service

import (
	"encoding/json"
	"time"
)

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func mustUnmarshal(data []byte, v any) {
	if err := json.Unmarshal(data, v); err != nil {
		panic(err)
	}
}

const (
	defaultWait = 100 * time.Millisecond
	defaultTick = 10 * time.Millisecond
)
