// Copyright 2022 Molecula Corp. All rights reserved.
/*
This is the entrypoint for the sqltypecheck binary.
*/
package main

import (
	"os"

	"github.com/featurebasedb/sqltypecheck/cmd"
	"github.com/featurebasedb/sqltypecheck/logger"
)

func main() {
	rootCmd := cmd.NewRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		logger.StderrLogger.Errorf("%v", err)
		os.Exit(1)
	}
}
