// Command sfs boots the secure file system engine and drives it from a
// minimal line-oriented shell. The shell's parsing is intentionally thin —
// spec.md treats the interactive command shell as an external collaborator
// out of the core's scope — this is just enough surface to exercise every
// Coordinator verb end to end.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yismailuofa/sfs"
)

const (
	keyFile         = "fernet.key"
	storageRoot     = "files"
	permissionsPath = "json/permissions.json"
	usersPath       = "json/users.json"
)

func main() {
	os.Exit(run())
}

func run() int {
	session := sfs.NewSession()
	logger := sfs.NewLogger(session.ID)

	if _, err := os.Stat(keyFile); os.IsNotExist(err) {
		if err := sfs.WriteKeyFile(keyFile); err != nil {
			logger.Error().Err(err).Msg("failed to provision key file")
			return 1
		}
		logger.Info().Str("path", keyFile).Msg("provisioned new key file")
	}

	keyProvider, err := sfs.NewFileKeyProvider(keyFile)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load key file")
		return 1
	}

	if err := os.MkdirAll("json", 0o755); err != nil {
		logger.Error().Err(err).Msg("failed to create json directory")
		return 1
	}

	diskFS, err := sfs.NewDiskFS(storageRoot)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize storage root")
		return 1
	}

	cfg := &sfs.Config{
		Cipher:          sfs.CipherAES256GCM,
		KeyProvider:     keyProvider,
		StorageRoot:     storageRoot,
		PermissionsPath: permissionsPath,
		UsersPath:       usersPath,
	}

	engine, err := sfs.NewEngine(diskFS, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build engine")
		return 1
	}

	repl(engine.Coordinator, session)
	return 0
}

// repl reads one command per line and dispatches it to the Coordinator. It
// exists only to exercise the engine — real argument quoting, history, and
// help text belong to the shell layer spec.md excludes.
func repl(c *sfs.Coordinator, s *sfs.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(prompt(s))
		if !scanner.Scan() {
			fmt.Println()
			return
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		verb, args := fields[0], fields[1:]

		if verb == "quit" {
			return
		}

		if !s.IsAuthenticated() && verb != "login" && verb != "register" {
			fmt.Println("DENIED: not logged in")
			continue
		}

		dispatch(c, s, verb, args)
	}
}

func prompt(s *sfs.Session) string {
	if !s.IsAuthenticated() {
		return "sfs> "
	}
	return fmt.Sprintf("sfs:%s:/%s> ", s.User.Name, s.Cwd)
}

func dispatch(c *sfs.Coordinator, s *sfs.Session, verb string, args []string) {
	switch verb {
	case "login":
		if len(args) != 2 {
			fmt.Println("usage: login <user> <password>")
			return
		}
		status, corrupt := c.Login(s, args[0], args[1])
		fmt.Println(status)
		for _, path := range corrupt {
			fmt.Printf("File /%s is corrupted ❌\n", path)
		}

	case "register":
		if len(args) != 2 {
			fmt.Println("usage: register <user> <password>")
			return
		}
		fmt.Println(c.Register(s, args[0], args[1]))

	case "logout":
		fmt.Println(c.Logout(s))

	case "ls":
		entries, status := c.Ls(s)
		if status != sfs.StatusOK {
			fmt.Println(status)
			return
		}
		for _, e := range entries {
			fmt.Println(e)
		}

	case "cd":
		if len(args) != 1 {
			fmt.Println("usage: cd <path>")
			return
		}
		fmt.Println(c.Cd(s, args[0]))

	case "pwd":
		fmt.Println(c.Pwd(s))

	case "cat":
		if len(args) != 1 {
			fmt.Println("usage: cat <path>")
			return
		}
		contents, status := c.Cat(s, args[0])
		if status != sfs.StatusOK {
			fmt.Println(status)
			return
		}
		fmt.Println(contents)

	case "touch":
		if len(args) != 1 {
			fmt.Println("usage: touch <path>")
			return
		}
		fmt.Println(c.Touch(s, args[0]))

	case "mkdir":
		if len(args) != 1 {
			fmt.Println("usage: mkdir <path>")
			return
		}
		fmt.Println(c.Mkdir(s, args[0]))

	case "echo":
		if len(args) < 2 {
			fmt.Println("usage: echo <path> <content...>")
			return
		}
		fmt.Println(c.Echo(s, args[0], strings.Join(args[1:], " ")))

	case "mv":
		if len(args) != 2 {
			fmt.Println("usage: mv <path> <new-name>")
			return
		}
		fmt.Println(c.Mv(s, args[0], args[1]))

	case "chp":
		if len(args) != 2 {
			fmt.Println("usage: chp <path> <0|1|2>")
			return
		}
		mode, err := strconv.Atoi(args[1])
		if err != nil || mode < 0 || mode > 2 {
			fmt.Println("usage: chp <path> <0|1|2>")
			return
		}
		fmt.Println(c.Chp(s, args[0], sfs.ChangePermissionsMode(mode)))

	case "create-group":
		if len(args) < 2 {
			fmt.Println("usage: create-group <name> <member...>")
			return
		}
		fmt.Println(c.CreateGroup(s, args[0], args[1:]))

	case "update-group":
		if len(args) < 3 || (args[1] != "add" && args[1] != "remove") {
			fmt.Println("usage: update-group <name> <add|remove> <member...>")
			return
		}
		if args[1] == "add" {
			fmt.Println(c.UpdateGroup(s, args[0], args[2:], nil))
		} else {
			fmt.Println(c.UpdateGroup(s, args[0], nil, args[2:]))
		}

	case "delete-group":
		if len(args) != 1 {
			fmt.Println("usage: delete-group <name>")
			return
		}
		fmt.Println(c.DeleteGroup(s, args[0]))

	default:
		fmt.Printf("unknown command: %s\n", verb)
	}
}
