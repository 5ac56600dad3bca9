package main

import (
	"context"

	"auctionrelay/cmd/auctionctl/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
