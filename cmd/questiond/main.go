// Package main provides the entry point for the question of the cycle service.
package main

import (
	"question_cycle_service/internal/cli"
)

func main() {
	cli.Execute()
}
