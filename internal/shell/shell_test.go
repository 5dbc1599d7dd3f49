package shell

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/marmos91/blockfs/pkg/disk"
	"github.com/marmos91/blockfs/pkg/store/image"
	"github.com/marmos91/blockfs/pkg/store/image/memory"
	"github.com/marmos91/blockfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runScript feeds script to a fresh shell and returns everything it printed.
func runScript(t *testing.T, script string, cfg Config) (string, *Shell) {
	t.Helper()

	s, err := vfs.New()
	require.NoError(t, err)

	var out bytes.Buffer
	cfg.In = strings.NewReader(script)
	cfg.Out = &out
	sh := New(s, cfg)
	require.NoError(t, sh.Run(context.Background()))
	return out.String(), sh
}

func TestPrompt(t *testing.T) {
	out, sh := runScript(t, "mkdir docs\ncd docs\n", Config{})

	assert.Contains(t, out, "blockfs:/root> ")
	assert.Contains(t, out, "blockfs:/root/docs> ")
	assert.Equal(t, "blockfs:/root/docs> ", sh.Prompt())
}

func TestMkdir(t *testing.T) {
	out, _ := runScript(t, "mkdir docs\nmkdir docs\nmkdir\n", Config{})

	assert.Contains(t, out, "Directory 'docs' created.")
	assert.Contains(t, out, "Directory 'docs' already exists!")
	assert.Contains(t, out, "Usage: mkdir <dir>")
}

func TestCreateAndCat(t *testing.T) {
	out, sh := runScript(t, "create a.txt\nhello world\ncat a.txt\n", Config{})

	assert.Contains(t, out, "Enter file content: ")
	assert.Contains(t, out, "File 'a.txt' created successfully.")
	assert.Contains(t, out, "hello world\n")

	ino, err := sh.Session().Stat(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, len("hello world\n"), ino.Size, "content keeps its trailing newline")
}

func TestCreate_Duplicate(t *testing.T) {
	out, _ := runScript(t, "create a\none\ncreate a\nls\n", Config{})

	assert.Contains(t, out, "File 'a' already exists!")
	assert.Equal(t, 1, strings.Count(out, "Enter file content: "), "no content prompt for an existing name")
}

func TestCreate_NoSpace(t *testing.T) {
	s, err := vfs.New(vfs.WithGeometry(disk.Geometry{BlockSize: 4, TotalBlocks: 2}))
	require.NoError(t, err)

	var out bytes.Buffer
	sh := New(s, Config{In: strings.NewReader("create big\n0123456789\n"), Out: &out})
	require.NoError(t, sh.Run(context.Background()))

	assert.Contains(t, out.String(), "Not enough space on disk")
	assert.False(t, s.Cwd().HasEntry("big"))
	assert.Equal(t, 2, s.Disk().FreeCount())
}

func TestWrite(t *testing.T) {
	out, sh := runScript(t, "create a\none\nwrite a\nsecond line\ncat a\nwrite missing\n", Config{})

	assert.Contains(t, out, "File 'a' updated.")
	assert.Contains(t, out, "second line\n")
	assert.Contains(t, out, "File 'missing' not found.")

	data, err := sh.Session().ReadFile(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "second line\n", string(data))
}

func TestCat_Errors(t *testing.T) {
	out, _ := runScript(t, "mkdir d\ncat d\ncat nope\n", Config{})

	assert.Contains(t, out, "'d' is a directory.")
	assert.Contains(t, out, "File 'nope' not found.")
}

func TestCd(t *testing.T) {
	out, _ := runScript(t, strings.Join([]string{
		"cd ..",
		"mkdir docs",
		"create f",
		"x",
		"cd f",
		"cd nope",
		"cd docs",
		"pwd",
		"cd ..",
	}, "\n")+"\n", Config{})

	assert.Contains(t, out, "Already at root directory.")
	assert.Contains(t, out, "'f' is not a directory.")
	assert.Contains(t, out, "Directory 'nope' not found.")
	assert.Contains(t, out, "Entered 'docs'")
	assert.Contains(t, out, "/root/docs\n")
	assert.Contains(t, out, "Moved up to 'root'")
}

func TestLs(t *testing.T) {
	out, _ := runScript(t, "ls\nmkdir docs\ncreate a\nabc\nls\nls -l\n", Config{})

	assert.Contains(t, out, "Directory contents:")
	assert.Contains(t, out, "(empty)")
	assert.Contains(t, out, "docs (DIR) -> inode")
	assert.Contains(t, out, "a (FILE) -> inode")
	assert.Contains(t, strings.ToUpper(out), "PERMS")
	assert.Contains(t, out, "rw-")
}

func TestRm(t *testing.T) {
	out, sh := runScript(t, "mkdir d\nrm d\nrm nope\ncreate f\nabc\nrm f\n", Config{})

	assert.Contains(t, out, "Use rmdir for directories!")
	assert.Contains(t, out, "No such file 'nope'.")
	assert.Contains(t, out, "File 'f' deleted.")
	assert.True(t, sh.Session().Cwd().HasEntry("d"))
	assert.Equal(t, sh.Session().Disk().Geometry().TotalBlocks, sh.Session().Disk().FreeCount())
}

func TestCp(t *testing.T) {
	out, sh := runScript(t, "create a\nabc\ncp a b\ncp a b\ncp\n", Config{})

	assert.Contains(t, out, "File 'a' copied to 'b'.")
	assert.Contains(t, out, "File 'b' already exists!")
	assert.Contains(t, out, "Usage: cp <src> <dst>")

	data, err := sh.Session().ReadFile(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "abc\n", string(data))
}

func TestStatDfFsck(t *testing.T) {
	out, _ := runScript(t, "create a\nabc\nstat a\nstat nope\ndf\nfsck\n", Config{})

	assert.Contains(t, out, "Permissions: r=true w=true x=false")
	assert.Contains(t, out, "No such file or directory 'nope'.")
	assert.Contains(t, out, "Free blocks")
	assert.Contains(t, out, "OK")
}

func TestUnknownAndBlank(t *testing.T) {
	out, _ := runScript(t, "\n   \nfrobnicate\n", Config{})

	assert.Equal(t, 1, strings.Count(out, "Unknown command. Type 'help' for commands."))
}

func TestHelp(t *testing.T) {
	out, _ := runScript(t, "help\n", Config{})

	for _, name := range []string{"mkdir", "create", "write", "cat", "ls", "cd", "pwd", "rm", "cp", "stat", "df", "fsck", "save", "exit"} {
		assert.Contains(t, out, name)
	}
}

func TestExit_SavesImage(t *testing.T) {
	store := memory.New()
	out, sh := runScript(t, "mkdir docs\nexit\nmkdir never\n", Config{
		Store:      store,
		ImageName:  "fs_image.bin",
		SaveOnExit: true,
	})

	assert.Contains(t, out, "File system saved to 'fs_image.bin'. Exiting...")
	assert.False(t, sh.Session().Cwd().HasEntry("never"), "commands after exit are not run")

	data, err := store.Load(context.Background(), "fs_image.bin")
	require.NoError(t, err)
	assert.Equal(t, sh.Session().Disk().Image(), data)
}

func TestEOF_ActsAsExit(t *testing.T) {
	store := memory.New()
	out, _ := runScript(t, "create a\nabc\n", Config{
		Store:      store,
		ImageName:  "img",
		SaveOnExit: true,
	})

	assert.Contains(t, out, "Exiting...")
	_, err := store.Load(context.Background(), "img")
	assert.NoError(t, err)
}

func TestExit_WithoutSave(t *testing.T) {
	store := memory.New()
	out, _ := runScript(t, "exit\n", Config{Store: store, ImageName: "img"})

	assert.Contains(t, out, "Exiting...")
	_, err := store.Load(context.Background(), "img")
	assert.ErrorIs(t, err, image.ErrImageNotFound)
}

func TestSave(t *testing.T) {
	store := memory.New()
	out, _ := runScript(t, "save\n", Config{Store: store, ImageName: "img"})
	assert.Contains(t, out, "File system saved to 'img'.")

	out, _ = runScript(t, "save\n", Config{})
	assert.Contains(t, out, "No image store configured.")
}

func TestBanner(t *testing.T) {
	out, _ := runScript(t, "", Config{Banner: true})
	assert.Contains(t, out, "Type 'help' for list of commands.")
}

func TestColor(t *testing.T) {
	out, _ := runScript(t, "mkdir a\n", Config{Color: true})
	assert.Contains(t, out, "\033[")

	out, _ = runScript(t, "mkdir a\n", Config{})
	assert.NotContains(t, out, "\033[")
}
