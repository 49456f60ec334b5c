package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/staranto/tunctlgo/internal/meta"
	"github.com/urfave/cli/v3"
)

const bashCompletionScript = `# bash completion for tunctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_tunctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "up down status token completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
  local common="--thing-name -t --profile -p --region -r --service -s --tldr"

    case "$cmd" in
    up)
      local opts="$common --port -P --clean-known-hosts --no-clean-known-hosts --pull --wait --no-wait --timeout"
            ;;
        down)
      local opts="$common --port -P --close-tunnel"
            ;;
        status)
      local opts="$common --port -P --output -o --titles --no-titles --color -c --no-color --verbose"
            ;;
        token)
      local opts="$common --destination"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
        return 0
    fi

  COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
  return 0
}

complete -F _tunctl tunctl
`

const zshCompletionScript = `#compdef tunctl

_tunctl() {
  local -a cmds
  cmds=(
    'up:establish a tunnel and start the local proxy'
    'down:stop the local proxy'
    'status:show tunnel and proxy container status'
    'token:print a tunnel access token'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-t --thing-name)'{-t,--thing-name}'[IoT Thing name]:thing'
  '(-p --profile)'{-p,--profile}'[AWS profile]:profile'
  '(-r --region)'{-r,--region}'[AWS region]:region'
  '(-s --service)'{-s,--service}'[destination service]:service'
  '--tldr[show tldr page]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'tunctl commands' cmds
    return
  fi

  case $words[2] in
    up)
      _arguments -C \
        $common \
        '(-P --port)'{-P,--port}'[local port]:port' \
        '--clean-known-hosts[clean stale known_hosts entries]' \
        '--no-clean-known-hosts[keep known_hosts untouched]' \
        '--pull[pull the localproxy image first]' \
        '--wait[wait for the proxy port]' \
        '--no-wait[do not wait for the proxy port]' \
        '--timeout[readiness timeout]:duration'
      ;;
    down)
      _arguments -C \
        $common \
        '(-P --port)'{-P,--port}'[local port]:port' \
        '--close-tunnel[also close OPEN tunnels]'
      ;;
    status)
      _arguments -C \
        $common \
        '(-P --port)'{-P,--port}'[local port]:port' \
        '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)' \
        '--titles[show titles]' \
        '--no-titles[hide titles]' \
        '(-c --color)'{-c,--color}'[colored output]' \
        '--verbose[include account and caller]'
      ;;
    token)
      _arguments -C \
        $common \
        '--destination[print the destination token]'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _tunctl tunctl tunctlgo
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(os.Stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(os.Stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(os.Stdout, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(os.Stdout, bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: tunctl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "tunctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
