// Copyright 2022 Molecula Corp. All rights reserved.

/*
Package cmd contains the sqltypecheck subcommand definitions (1 per file).

Each command file has a new*Command function which returns a cobra.Command
wrapping the matching command from package ctl. NewRootCommand adds every
subcommand and applies configuration from flags, the environment and a
config file before any of them run.
*/
package cmd
