package main

import (
	"fmt"
	"os/exec"
)

type Hook func(arg string)

var registry = map[string][]Hook{}

func AddHook(name string, h Hook) {
	registry[name] = append(registry[name], h)
}

func runCommand(arg string) {
	exec.Command("sh", "-c", arg).Run() // @Issue(shell-injection)
}

func logArg(arg string) {
	fmt.Println(len(arg))
}

func main() {
	AddHook("cmd", runCommand)
	AddHook("log", logArg)
}
