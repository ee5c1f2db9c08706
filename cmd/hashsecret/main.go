// Command hashsecret prints the bcrypt hash to put in
// IDENTITY_WEBHOOK_SECRET_HASH.  The secret is read from the first
// argument or, when absent, from the first line of stdin.
//
//	echo -n "$SECRET" | go run ./cmd/hashsecret
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/interview-scheduler/internal/utils"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatalf("hashsecret: %v", err)
	}
}

func run(args []string, in io.Reader, out io.Writer) error {
	secret := ""
	if len(args) > 0 {
		secret = args[0]
	} else {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		secret = strings.TrimRight(line, "\r\n")
	}
	if strings.TrimSpace(secret) == "" {
		return errors.New("secret is empty")
	}
	hash, err := utils.HashSecret(secret, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "IDENTITY_WEBHOOK_SECRET_HASH=%s\n", hash)
	return err
}
