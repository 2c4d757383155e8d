// gashift 排班引擎命令行入口
package main

import (
	"fmt"
	"os"

	"github.com/paiban/gashift/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}
