package iocli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio консольный ввод-вывод поверх произвольных потоков.
// Пароль читается без эха, только если вход является терминалом.
type Stdio struct {
	in     *bufio.Reader
	out    io.Writer
	inFile *os.File
}

// NewStdio создает IO поверх os.Stdin и os.Stdout
func NewStdio() IO {
	s := NewStream(os.Stdin, os.Stdout).(*Stdio)
	s.inFile = os.Stdin
	return s
}

// NewStream создает IO поверх заданных потоков (скрипты, тесты)
func NewStream(in io.Reader, out io.Writer) IO {
	return &Stdio{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	return s.readLine()
}

func (s *Stdio) ReadPassword(prompt string) (string, error) {
	s.Printf("%s", prompt)

	if s.inFile == nil || !term.IsTerminal(int(s.inFile.Fd())) {
		return s.readLine()
	}

	pwBytes, err := term.ReadPassword(int(s.inFile.Fd()))
	s.Println("")
	if err != nil {
		return "", err
	}
	return string(pwBytes), nil
}

func (s *Stdio) readLine() (string, error) {
	input, err := s.in.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
