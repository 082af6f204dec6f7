// Package main はパスワードの bcrypt ダイジェストを生成する管理用コマンドです。
// 端末から入力した場合はエコーしません。パイプ入力の場合は 1 行目を使います。
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/yourusername/auth-api/internal/auth"
)

// readPassword は term.ReadPassword のテスト用差し替え口です。
var readPassword = term.ReadPassword

func main() {
	if err := run(context.Background(), os.Stdin, os.Stdout, os.Stderr, term.IsTerminal(int(os.Stdin.Fd()))); err != nil {
		fmt.Fprintln(os.Stderr, "hashpw:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, in io.Reader, out, prompt io.Writer, interactive bool) error {
	password, err := readInput(in, prompt, interactive)
	if err != nil {
		return err
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	digest, err := auth.NewHasher(1).Hash(ctx, password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, digest)
	return err
}

func readInput(in io.Reader, prompt io.Writer, interactive bool) (string, error) {
	if interactive {
		fmt.Fprint(prompt, "Enter password: ")
		pw, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
