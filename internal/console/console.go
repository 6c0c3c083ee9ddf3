package console

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/vbonduro/imgprompt/internal/domain"
	"github.com/vbonduro/imgprompt/internal/service"
)

const helpText = `commands:
  open <path>   select a PNG, JPG, or WEBP image
  generate      generate a prompt for the selected image
  copy          copy the prompt to the terminal clipboard
  reset         start over
  show          print the current state
  help          show this help
  quit          exit`

// imageExts maps file extensions to the MIME type declared for them.
var imageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// mimeFromPath returns the declared MIME type for a file name.
func mimeFromPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mt, ok := imageExts[ext]; ok {
		return mt
	}
	return mime.TypeByExtension(ext)
}

// OSC52Clipboard writes text to the terminal's clipboard using the OSC 52
// escape sequence.
type OSC52Clipboard struct {
	W io.Writer
}

func (c OSC52Clipboard) WriteText(_ context.Context, text string) error {
	_, err := fmt.Fprintf(c.W, "\x1b]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
	return err
}

// Console drives a controller from text commands.
type Console struct {
	controller *service.Controller
	clipboard  service.Clipboard
	out        io.Writer
	readFile   func(string) ([]byte, error)
}

func New(controller *service.Controller, clipboard service.Clipboard, out io.Writer) *Console {
	return &Console{
		controller: controller,
		clipboard:  clipboard,
		out:        out,
		readFile:   os.ReadFile,
	}
}

// Execute runs one command line. It returns true when the user asked to quit.
func (c *Console) Execute(ctx context.Context, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
		return false, nil
	case "quit", "exit":
		return true, nil
	case "help":
		c.println(helpText)
	case "open":
		return false, c.open(arg)
	case "generate":
		return false, c.generate(ctx)
	case "copy":
		return false, c.copy(ctx)
	case "reset":
		if err := c.controller.Reset(); err != nil {
			return false, err
		}
		c.println("Start over: nothing selected.")
	case "show":
		c.show()
	default:
		return false, fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return false, nil
}

func (c *Console) open(path string) error {
	if path == "" {
		return errors.New("usage: open <path>")
	}
	data, err := c.readFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := c.controller.SelectImage(filepath.Base(path), mimeFromPath(path), data); err != nil {
		if errors.Is(err, service.ErrInvalidFileType) {
			c.println(c.controller.Snapshot().Error)
			return nil
		}
		return err
	}
	c.printf("Selected %s (%d bytes). Type generate to continue.\n", filepath.Base(path), len(data))
	return nil
}

func (c *Console) generate(ctx context.Context) error {
	c.println("Generating prompt...")
	outcome, err := c.controller.Generate(ctx)
	if err != nil && !errors.Is(err, service.ErrNoImage) {
		return err
	}
	switch outcome.Status {
	case domain.OutcomeSuccess:
		c.println(outcome.Text)
	default:
		c.println(outcome.Message)
	}
	return nil
}

func (c *Console) copy(ctx context.Context) error {
	copied, err := c.controller.Copy(ctx, c.clipboard)
	if err != nil {
		return err
	}
	if !copied {
		c.println("Nothing to copy yet.")
		return nil
	}
	c.println("Copied to clipboard.")
	return nil
}

func (c *Console) show() {
	st := c.controller.Snapshot()
	c.printf("phase: %s\n", st.Phase())
	if st.Image != nil {
		c.printf("image: %s (%s, %d bytes)\n", st.Image.Name, st.Image.MimeType, len(st.Image.Data))
	}
	if st.Error != "" {
		c.printf("error: %s\n", st.Error)
	}
	if st.Prompt != "" {
		c.printf("prompt: %s\n", st.Prompt)
	}
}

func (c *Console) println(s string) {
	_, _ = fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// Completer offers the command names for tab completion.
func Completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("open"),
		readline.PcItem("generate"),
		readline.PcItem("copy"),
		readline.PcItem("reset"),
		readline.PcItem("show"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// Run reads commands from rl until EOF or quit.
func (c *Console) Run(ctx context.Context, rl *readline.Instance) error {
	c.println(helpText)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil { // io.EOF
			return nil
		}
		quit, err := c.Execute(ctx, line)
		if err != nil {
			c.println(err.Error())
		}
		if quit {
			return nil
		}
	}
}
