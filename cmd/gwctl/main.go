package main

import (
	"os"

	"modelgw/internal/gwctl"
)

func main() {
	os.Exit(gwctl.Main())
}
