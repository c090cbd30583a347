// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/awslabs/ar-go-taintcheck/analysis"
	"github.com/awslabs/ar-go-taintcheck/cmd/argot/summaries"
	"github.com/awslabs/ar-go-taintcheck/cmd/argot/taint"
	"github.com/awslabs/ar-go-taintcheck/cmd/argot/tools"
)

const usage = `Argot: taint analysis of external input flows
Usage:
  argot [tool] [options] <package path(s) | program file(s)>
Tools:
  - taint: performs a taint analysis on a given program and reports the issues found
  - check: same as taint, but fails when an issue is reported
  - summaries: prints the taint signatures computed for the functions of a given program
Examples:
  Run the taint analysis: argot taint --config=config.yaml main.go
  Check a project in CI: argot check -format sarif ./...`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(analysis.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "taint", "check":
		flags, err := taint.NewFlags(cmd, args)
		if err != nil {
			errExit(err)
		}
		if err := taint.Run(flags); err != nil {
			if errors.Is(err, taint.ErrIssuesFound) {
				os.Exit(1)
			}
			errExit(err)
		}
	case "summaries":
		flags, err := tools.NewCommonFlags("summaries", args, summaries.Usage)
		if err != nil {
			errExit(err)
		}
		if err := summaries.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
