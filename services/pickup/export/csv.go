package export

import (
	"encoding/csv"
	"os"

	"vivapickup/services/pickup"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// CSV writes the rows GBK-encoded so the file opens cleanly in the
// Chinese-locale Excel installs on the store machines.
type CSV struct{}

func (CSV) Write(path string, rows []pickup.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := transform.NewWriter(f, simplifiedchinese.GBK.NewEncoder())
	w := csv.NewWriter(enc)

	err = w.Write(Headers[:])
	if err != nil {
		return err
	}
	for _, row := range rows {
		err = w.Write(row[:])
		if err != nil {
			return err
		}
	}

	w.Flush()
	err = w.Error()
	if err != nil {
		return err
	}
	err = enc.Close()
	if err != nil {
		return err
	}
	return f.Close()
}
