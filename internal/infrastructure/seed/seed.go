// Package seed loads baseline directory records from a YAML file.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/directory"
)

// File is the seed document layout.
//
//	platforms:
//	  - name: Upwork
//	    slug: upwork
//	    accounts:
//	      - name: Main
//	        username: acme-hiring
//	        active: true
//	job_types:
//	  - Backend Engineer
type File struct {
	Platforms []PlatformSeed `yaml:"platforms"`
	JobTypes  []string       `yaml:"job_types"`
}

// PlatformSeed describes one platform and its accounts.
type PlatformSeed struct {
	Name     string        `yaml:"name"`
	Slug     string        `yaml:"slug"`
	Accounts []AccountSeed `yaml:"accounts"`
}

// AccountSeed describes one platform account.
type AccountSeed struct {
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Active   *bool  `yaml:"active"`
}

// Load reads and parses a seed file.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a seed document.
func Parse(raw []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &file, nil
}

// Apply creates every record missing from the directory. Existing platforms
// match by slug, accounts by name within a platform, job types by name.
func Apply(ctx context.Context, svc directory.Service, file *File, log zerolog.Logger) error {
	platforms, err := svc.ListPlatforms(ctx)
	if err != nil {
		return err
	}
	bySlug := make(map[string]*directory.Platform, len(platforms))
	for _, p := range platforms {
		bySlug[p.Slug] = p
	}

	created := 0
	for _, ps := range file.Platforms {
		slug := ps.Slug
		if slug == "" {
			slug = strings.ToLower(strings.TrimSpace(ps.Name))
		}
		platform, ok := bySlug[slug]
		if !ok {
			platform, err = svc.CreatePlatform(ctx, ps.Name, slug)
			if err != nil {
				return fmt.Errorf("seed platform %q: %w", ps.Name, err)
			}
			bySlug[platform.Slug] = platform
			created++
		}

		accounts, err := svc.ListAccounts(ctx, platform.ID)
		if err != nil {
			return err
		}
		existing := make(map[string]struct{}, len(accounts))
		for _, a := range accounts {
			existing[a.Name] = struct{}{}
		}
		for _, as := range ps.Accounts {
			if _, ok := existing[as.Name]; ok {
				continue
			}
			active := as.Active == nil || *as.Active
			if _, err := svc.CreateAccount(ctx, platform.ID, as.Name, as.Username, active); err != nil {
				return fmt.Errorf("seed account %q: %w", as.Name, err)
			}
			existing[as.Name] = struct{}{}
			created++
		}
	}

	jobTypes, err := svc.ListJobTypes(ctx)
	if err != nil {
		return err
	}
	names := make(map[string]struct{}, len(jobTypes))
	for _, j := range jobTypes {
		names[j.Name] = struct{}{}
	}
	for _, name := range file.JobTypes {
		name = strings.TrimSpace(name)
		if _, ok := names[name]; ok || name == "" {
			continue
		}
		if _, err := svc.CreateJobType(ctx, name); err != nil {
			return fmt.Errorf("seed job type %q: %w", name, err)
		}
		names[name] = struct{}{}
		created++
	}

	log.Info().Int("created", created).Msg("seed applied")
	return nil
}
