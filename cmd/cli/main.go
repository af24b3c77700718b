package main

import (
	"github.com/proteograph/pint/pkg/cli"
)

func main() {
	cli.Execute()
}
