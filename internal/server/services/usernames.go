package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

const (
	usernameShortAttempts = 10
	usernameShortSuffix   = 3
	usernameLongSuffix    = 8
)

// usernameCandidate derives the preferred name from the local part of email.
func usernameCandidate(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.TrimSpace(local)
	if local == "" {
		return "user"
	}
	return local
}

// uniqueUsername returns candidate if it is free, otherwise candidate with a
// random hex suffix. After usernameShortAttempts taken short suffixes it
// switches to a long suffix and probes once more.
func uniqueUsername(ctx context.Context, repo users.Repository, candidate string) (string, error) {
	free, err := nameFree(ctx, repo, candidate)
	if err != nil {
		return "", err
	}
	if free {
		return candidate, nil
	}

	for i := 0; i < usernameShortAttempts; i++ {
		name, err := suffixed(candidate, usernameShortSuffix)
		if err != nil {
			return "", err
		}
		free, err := nameFree(ctx, repo, name)
		if err != nil {
			return "", err
		}
		if free {
			return name, nil
		}
	}

	name, err := suffixed(candidate, usernameLongSuffix)
	if err != nil {
		return "", err
	}
	if free, err = nameFree(ctx, repo, name); err != nil {
		return "", err
	}
	if free {
		return name, nil
	}
	return "", fmt.Errorf("%w: no free username for %q", common.ErrorInternal, candidate)
}

func nameFree(ctx context.Context, repo users.Repository, name string) (bool, error) {
	taken, err := repo.ExistsByName(ctx, name)
	if err != nil {
		return false, fmt.Errorf("error checking username: %w", err)
	}
	return !taken, nil
}

func suffixed(candidate string, size int) (string, error) {
	suffix, err := common.MakeRandHexString(size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return candidate + "_" + suffix, nil
}
