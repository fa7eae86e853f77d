package mcpserver

import (
	"fmt"
	"unicode/utf8"
)

// Field limits enforced at the tool boundary.
const (
	maxNameLength        = 30
	maxDescriptionLength = 200
	maxRoleLength        = 100
	maxResourceLength    = 300
	maxSkills            = 10
	maxCompanyLength     = 100
	maxWebsiteLength     = 200
	maxLocationLength    = 100
	maxMessageLength     = 2000
)

func checkLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min {
		return fmt.Errorf("%s must be at least %d character(s)", field, min)
	}
	if n > max {
		return fmt.Errorf("%s must be at most %d characters", field, max)
	}
	return nil
}

func requireName(field, value string) error {
	return checkLength(field, value, 1, maxNameLength)
}

func validateRegister(args registerArgs) error {
	if err := checkLength("name", args.Name, 1, maxNameLength); err != nil {
		return err
	}
	if err := checkLength("description", args.Description, 0, maxDescriptionLength); err != nil {
		return err
	}
	if err := checkLength("role", args.Role, 0, maxRoleLength); err != nil {
		return err
	}
	if err := checkLength("recommended_resource", args.RecommendedResource, 0, maxResourceLength); err != nil {
		return err
	}
	if len(args.Skills) > maxSkills {
		return fmt.Errorf("skills must have at most %d entries", maxSkills)
	}
	if err := checkLength("company", args.Company, 0, maxCompanyLength); err != nil {
		return err
	}
	if err := checkLength("website", args.Website, 0, maxWebsiteLength); err != nil {
		return err
	}
	return checkLength("location", args.Location, 0, maxLocationLength)
}

func validateUpdateProfile(args updateProfileArgs) error {
	if err := requireName("agent_name", args.AgentName); err != nil {
		return err
	}
	if args.Description != nil {
		if err := checkLength("description", *args.Description, 0, maxDescriptionLength); err != nil {
			return err
		}
	}
	if args.Role != nil {
		if err := checkLength("role", *args.Role, 0, maxRoleLength); err != nil {
			return err
		}
	}
	if args.RecommendedResource != nil {
		if err := checkLength("recommended_resource", *args.RecommendedResource, 0, maxResourceLength); err != nil {
			return err
		}
	}
	if args.Skills != nil && len(*args.Skills) > maxSkills {
		return fmt.Errorf("skills must have at most %d entries", maxSkills)
	}
	if args.Company != nil {
		if err := checkLength("company", *args.Company, 0, maxCompanyLength); err != nil {
			return err
		}
	}
	if args.Website != nil {
		if err := checkLength("website", *args.Website, 0, maxWebsiteLength); err != nil {
			return err
		}
	}
	if args.Location != nil {
		return checkLength("location", *args.Location, 0, maxLocationLength)
	}
	return nil
}
