// Command tobchat is the TOB company chatbot: an SSE chat server, a
// terminal chat widget and a one-shot ask command.
package main

import "github.com/diogo/tobchat/internal/commands"

func main() {
	commands.Execute()
}
