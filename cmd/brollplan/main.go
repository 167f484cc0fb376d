package main

import "github.com/forPelevin/brollplan/internal/cli"

func main() { cli.Main() }
