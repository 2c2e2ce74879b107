package main

import "context"

func (cli *commandLine) clearSelection(userID string) error {
	if err := cli.selRepo.DeleteSelection(context.Background(), userID); err != nil {
		return err
	}
	logger.Printf("selection cleared for user %s\n", userID)
	return nil
}
