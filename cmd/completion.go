package cmd

import (
	"fmt"
	"strings"
)

// subcommands lists the command names offered by shell completion.
var subcommands = []string{
	"menu", "add", "ls", "done", "undo", "rm", "edit", "tui",
	"init", "config", "log", "completion", "version", "help",
}

// completionCommand prints a shell completion script.
func (c *cli) completionCommand(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("completion: expected a shell name (bash, zsh, fish)")
	}

	words := strings.Join(subcommands, " ")
	switch strings.ToLower(args[0]) {
	case "bash":
		fmt.Fprintf(c.out, bashCompletion, words)
	case "zsh":
		fmt.Fprintf(c.out, zshCompletion, words)
	case "fish":
		fmt.Fprintf(c.out, fishCompletion, words)
	default:
		return fmt.Errorf("completion: unsupported shell %q", args[0])
	}
	return nil
}

const bashCompletion = `# todolist bash completion
_todolist() {
    local cur="${COMP_WORDS[COMP_CWORD]}"
    if [ "$COMP_CWORD" -eq 1 ]; then
        COMPREPLY=($(compgen -W "%s" -- "$cur"))
    elif [ "${COMP_WORDS[1]}" = "ls" ]; then
        COMPREPLY=($(compgen -W "all pending completed" -- "$cur"))
    fi
}
complete -F _todolist todolist
`

const zshCompletion = `#compdef todolist
_todolist() {
    if (( CURRENT == 2 )); then
        compadd %s
    elif [[ $words[2] == ls ]]; then
        compadd all pending completed
    fi
}
compdef _todolist todolist
`

const fishCompletion = `# todolist fish completion
complete -c todolist -f -n "__fish_use_subcommand" -a "%s"
complete -c todolist -f -n "__fish_seen_subcommand_from ls" -a "all pending completed"
`
