//go:build wasip1

// Command gosheet-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "formula": "=SUM(A1:A2)*2", "cells": { "A1": 1, "A2": 2 } }
//	stdout: { "result": 6, "dependencies": ["A1:A2"] }    on success
//	        { "error":  "<message>", "function": "SUM" }     on failure (exit code 1)
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o gosheet.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"formula":"=A1+1","cells":{"A1":41}}' | wasmtime gosheet.wasm
package main

import (
	"encoding/json"
	"os"

	"github.com/sandrolain/gosheet"
	"github.com/sandrolain/gosheet/pkg/functions"
	"github.com/sandrolain/gosheet/pkg/grid"
)

type request struct {
	Formula string         `json:"formula"`
	Cells   map[string]any `json:"cells"`
	Sheet   string         `json:"sheet"`
}

type response struct {
	Result       any      `json:"result,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Error        string   `json:"error,omitempty"`
	Function     string   `json:"function,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}
	if req.Sheet == "" {
		req.Sheet = "Sheet1"
	}

	g := grid.New(req.Sheet)
	for addr, v := range req.Cells {
		if err := g.Set(addr, v); err != nil {
			writeResponse(response{Error: err.Error()}, 1)
		}
	}

	f, err := gosheet.Compile(req.Formula)
	if err != nil {
		writeResponse(response{Error: err.Error()}, 1)
	}

	ctx := functions.NewContext(nil)
	result, err := g.Evaluate(f, ctx)
	if err != nil {
		writeResponse(response{Error: err.Error(), Function: ctx.LastFnCalled, Dependencies: f.Dependencies}, 1)
	}

	writeResponse(response{Result: result, Dependencies: f.Dependencies}, 0)
}
