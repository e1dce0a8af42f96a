package main

import (
	"github.com/cyking/JsonRPC/cmd/jsonrpcd/cmd"
)

func main() {
	cmd.Execute()
}
