package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/trezcool/eduos/core"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	if len(pwd) < 6 {
		return errors.New("password must be at least 6 characters in length")
	}
	email = core.CleanString(email, true /* lower */)
	if err := cli.usrSvc.SetPassword(context.Background(), email, pwd); err != nil {
		return err
	}
	fmt.Printf("password of %s updated\n", email)
	return nil
}
