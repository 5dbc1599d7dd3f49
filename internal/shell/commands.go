package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/marmos91/blockfs/internal/cli/output"
	"github.com/marmos91/blockfs/pkg/fserrors"
	"github.com/marmos91/blockfs/pkg/inode"
)

var errUsage = errors.New("usage")

func (sh *Shell) commandTable() map[string]command {
	return map[string]command{
		"help":   {"help", "Show this help", sh.help},
		"mkdir":  {"mkdir <dir>", "Create new directory", sh.mkdir},
		"create": {"create <file>", "Create new file", sh.create},
		"write":  {"write <file>", "Replace file content", sh.write},
		"cat":    {"cat <file>", "View file content", sh.cat},
		"ls":     {"ls [-l]", "List directory", sh.ls},
		"cd":     {"cd <dir|..>", "Change directory", sh.cd},
		"pwd":    {"pwd", "Show current path", sh.pwd},
		"rm":     {"rm <file>", "Delete a file", sh.rm},
		"cp":     {"cp <src> <dst>", "Copy a file", sh.cp},
		"stat":   {"stat <name>", "Show inode details", sh.stat},
		"df":     {"df", "Show block usage", sh.df},
		"fsck":   {"fsck", "Check consistency", sh.fsck},
		"save":   {"save", "Save the disk image", sh.save},
		"exit":   {"exit", "Save and quit", sh.exitCmd},
	}
}

func oneArg(args []string) (string, error) {
	if len(args) < 1 {
		return "", errUsage
	}
	return args[0], nil
}

func (sh *Shell) mkdir(ctx context.Context, args []string) error {
	name, err := oneArg(args)
	if err != nil {
		return err
	}

	_, err = sh.session.Mkdir(ctx, name)
	switch {
	case fserrors.IsAlreadyExistsError(err):
		sh.out.Error(fmt.Sprintf("Directory '%s' already exists!", name))
		return nil
	case err != nil:
		return err
	}
	sh.out.Success(fmt.Sprintf("Directory '%s' created.", name))
	return nil
}

// readContent prompts for one line of content. The trailing newline is kept.
func (sh *Shell) readContent() ([]byte, error) {
	sh.out.Printf("%s", sh.out.Paint(output.Blue, "Enter file content: "))
	line, err := sh.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return []byte(line), nil
}

func (sh *Shell) create(ctx context.Context, args []string) error {
	name, err := oneArg(args)
	if err != nil {
		return err
	}
	if sh.session.Cwd().HasEntry(name) {
		sh.out.Error(fmt.Sprintf("File '%s' already exists!", name))
		return nil
	}

	content, err := sh.readContent()
	if err != nil {
		return err
	}

	_, err = sh.session.CreateFile(ctx, name, content)
	switch {
	case fserrors.IsAlreadyExistsError(err):
		sh.out.Error(fmt.Sprintf("File '%s' already exists!", name))
		return nil
	case fserrors.IsNoSpaceError(err):
		sh.out.Error("Not enough space on disk: " + err.Error())
		return nil
	case err != nil:
		return err
	}
	sh.out.Success(fmt.Sprintf("File '%s' created successfully.", name))
	return nil
}

func (sh *Shell) write(ctx context.Context, args []string) error {
	name, err := oneArg(args)
	if err != nil {
		return err
	}
	if _, err := sh.session.Stat(ctx, name); err != nil {
		return sh.fileError(name, err)
	}

	content, err := sh.readContent()
	if err != nil {
		return err
	}
	if _, err := sh.session.WriteFile(ctx, name, content); err != nil {
		if fserrors.IsNoSpaceError(err) {
			sh.out.Error("Not enough space on disk: " + err.Error())
			return nil
		}
		return sh.fileError(name, err)
	}
	sh.out.Success(fmt.Sprintf("File '%s' updated.", name))
	return nil
}

func (sh *Shell) cat(ctx context.Context, args []string) error {
	name, err := oneArg(args)
	if err != nil {
		return err
	}

	data, err := sh.session.ReadFile(ctx, name)
	if err != nil {
		return sh.fileError(name, err)
	}
	if len(data) > 0 && !bytes.HasSuffix(data, []byte("\n")) {
		data = append(data, '\n')
	}
	_, err = sh.out.Writer().Write(data)
	return err
}

// fileError prints the message matching a failed file lookup.
func (sh *Shell) fileError(name string, err error) error {
	switch {
	case fserrors.IsIsDirectoryError(err):
		sh.out.Error(fmt.Sprintf("'%s' is a directory.", name))
	case fserrors.IsNotFoundError(err):
		sh.out.Error(fmt.Sprintf("File '%s' not found.", name))
	default:
		return err
	}
	return nil
}

func (sh *Shell) ls(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "-l" {
		return sh.lsLong(ctx)
	}
	sh.out.Println(sh.out.Paint(output.Bold+output.Magenta, "Directory contents:"))
	sh.session.Cwd().Format(sh.out.Writer())
	return nil
}

func (sh *Shell) lsLong(ctx context.Context) error {
	entries, err := sh.session.List(ctx)
	if err != nil {
		return err
	}

	table := output.NewTable("Name", "Type", "Inode", "Size", "Blocks", "Perms", "Modified")
	for _, e := range entries {
		ino, err := sh.session.Stat(ctx, e.Name)
		if err != nil {
			return err
		}
		table.AddRow(
			e.Name,
			e.Kind(),
			strconv.FormatUint(uint64(ino.ID), 10),
			strconv.Itoa(ino.Size),
			fmt.Sprint(ino.Blocks),
			ino.Permissions.String(),
			ino.ModifiedAt.Format(inode.TimeFormat),
		)
	}
	return output.PrintTable(sh.out.Writer(), table)
}

func (sh *Shell) cd(ctx context.Context, args []string) error {
	name, err := oneArg(args)
	if err != nil {
		return err
	}

	moved, err := sh.session.ChangeDir(ctx, name)
	switch {
	case fserrors.IsNotDirectoryError(err):
		sh.out.Error(fmt.Sprintf("'%s' is not a directory.", name))
		return nil
	case fserrors.IsNotFoundError(err):
		sh.out.Error(fmt.Sprintf("Directory '%s' not found.", name))
		return nil
	case err != nil:
		return err
	}

	switch {
	case !moved:
		sh.out.Warning("Already at root directory.")
	case name == "..":
		sh.out.Info(fmt.Sprintf("Moved up to '%s'", sh.session.Cwd().Name))
	default:
		sh.out.Info(fmt.Sprintf("Entered '%s'", name))
	}
	return nil
}

func (sh *Shell) pwd(context.Context, []string) error {
	sh.out.Println(sh.out.Paint(output.Green, sh.session.Path()))
	return nil
}

func (sh *Shell) rm(ctx context.Context, args []string) error {
	name, err := oneArg(args)
	if err != nil {
		return err
	}

	_, err = sh.session.Remove(ctx, name)
	switch {
	case fserrors.IsIsDirectoryError(err):
		sh.out.Warning("Use rmdir for directories!")
		return nil
	case fserrors.IsNotFoundError(err):
		sh.out.Error(fmt.Sprintf("No such file '%s'.", name))
		return nil
	case err != nil:
		return err
	}
	sh.out.Success(fmt.Sprintf("File '%s' deleted.", name))
	return nil
}

func (sh *Shell) cp(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	src, dst := args[0], args[1]

	_, err := sh.session.Copy(ctx, src, dst)
	switch {
	case fserrors.IsAlreadyExistsError(err):
		sh.out.Error(fmt.Sprintf("File '%s' already exists!", dst))
		return nil
	case fserrors.IsNoSpaceError(err):
		sh.out.Error("Not enough space on disk: " + err.Error())
		return nil
	case err != nil:
		return sh.fileError(src, err)
	}
	sh.out.Success(fmt.Sprintf("File '%s' copied to '%s'.", src, dst))
	return nil
}

func (sh *Shell) stat(ctx context.Context, args []string) error {
	name, err := oneArg(args)
	if err != nil {
		return err
	}

	ino, err := sh.session.Stat(ctx, name)
	if fserrors.IsNotFoundError(err) {
		sh.out.Error(fmt.Sprintf("No such file or directory '%s'.", name))
		return nil
	}
	if err != nil {
		return err
	}
	ino.Describe(sh.out.Writer())
	return nil
}

func (sh *Shell) df(context.Context, []string) error {
	u := sh.session.Usage()
	return output.KeyValues(sh.out.Writer(), [][2]string{
		{"Block size", strconv.Itoa(u.BlockSize)},
		{"Total blocks", strconv.Itoa(u.TotalBlocks)},
		{"Used blocks", strconv.Itoa(u.UsedBlocks)},
		{"Free blocks", strconv.Itoa(u.FreeBlocks)},
		{"Inodes", strconv.Itoa(u.Inodes)},
		{"Directories", strconv.Itoa(u.Directories)},
	})
}

func (sh *Shell) fsck(ctx context.Context, _ []string) error {
	violations := sh.session.Check(ctx)
	if len(violations) == 0 {
		sh.out.Success("OK")
		return nil
	}
	for _, v := range violations {
		sh.out.Error(v.String())
	}
	sh.out.Warning(fmt.Sprintf("%d problem(s) found.", len(violations)))
	return nil
}

func (sh *Shell) save(ctx context.Context, _ []string) error {
	if sh.cfg.Store == nil {
		sh.out.Warning("No image store configured.")
		return nil
	}
	if err := sh.session.SaveImage(ctx, sh.cfg.Store, sh.cfg.ImageName); err != nil {
		return err
	}
	sh.out.Success(fmt.Sprintf("File system saved to '%s'.", sh.cfg.ImageName))
	return nil
}

func (sh *Shell) exitCmd(ctx context.Context, _ []string) error {
	if err := sh.exit(ctx); err != nil {
		return err
	}
	return errExit
}
