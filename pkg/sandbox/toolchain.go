package sandbox

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedLanguage indicates no toolchain exists for the language.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// compileFailedExit distinguishes a compile failure from the program's own
// exit codes.
const compileFailedExit = 113

// toolchain describes how a language is compiled and run inside the sandbox.
type toolchain struct {
	image      string
	sourceFile string
	compile    string
	run        string
}

var toolchains = map[string]toolchain{
	"c": {
		image:      "gcc:13",
		sourceFile: "main.c",
		compile:    "gcc -O2 -o main main.c",
		run:        "./main < stdin.txt",
	},
	"cpp": {
		image:      "gcc:13",
		sourceFile: "main.cpp",
		compile:    "g++ -O2 -std=c++17 -o main main.cpp",
		run:        "./main < stdin.txt",
	},
}

func toolchainFor(language string) (toolchain, error) {
	tc, ok := toolchains[strings.ToLower(language)]
	if !ok {
		return toolchain{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	return tc, nil
}

// script is the two-phase container command: the compiler's output is captured
// in compile.log and a compile failure exits with the sentinel code so the
// executor can attribute the failure to the right phase.
func (t toolchain) script() string {
	return fmt.Sprintf("%s >compile.log 2>&1 || exit %d; %s", t.compile, compileFailedExit, t.run)
}
