package shell

import (
	"strings"

	"github.com/abiosoft/ishell/v2"
)

// Attach mounts the command table on sh. Registered names give ishell's help and
// completion; anything else, including commands typed in another case, goes through
// Dispatch. exit stops the shell; the caller shuts services down after Run returns.
func (s *Shell) Attach(sh *ishell.Shell) {
	sh.DeleteCmd("exit")

	for _, cmd := range s.commands() {
		sh.AddCmd(&ishell.Cmd{
			Name: cmd.name,
			Help: cmd.help,
			Func: func(c *ishell.Context) {
				s.runCommand(cmd, c, c.Args)
				c.SetPrompt(s.Prompt())
			},
		})
	}

	sh.AddCmd(&ishell.Cmd{
		Name: "exit",
		Help: "save every bot and quit",
		Func: func(c *ishell.Context) {
			c.Stop()
		},
	})

	sh.NotFound(func(c *ishell.Context) {
		if !s.Dispatch(c, strings.Join(c.RawArgs, " ")) {
			c.Stop()
			return
		}
		c.SetPrompt(s.Prompt())
	})

	sh.SetPrompt(s.Prompt())
}
