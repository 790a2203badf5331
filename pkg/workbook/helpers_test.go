package workbook_test

import (
	"os"

	"github.com/agentstation/sheetsync/pkg/constants"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), constants.FilePermissions)
}
