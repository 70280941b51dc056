package main

import (
	"github.com/panbanda/cyclo/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes the complexity
analyzer as a tool that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "cyclo": {
        "command": "cyclo",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_cyclomatic_complexity  Method and class cyclomatic complexity

Available prompts:
  - refactoring-priority  Rank complex methods and propose refactorings
  - quality-gate          Pass or fail against the report levels`,
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	server := mcpserver.NewServer(version)
	return server.Run(c.Context)
}
