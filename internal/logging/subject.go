package logging

import "strings"

// FormatSubject builds the journal/volume subject shown in console output.
// The volume folder usually embeds the journal id, in which case only the
// volume is printed.
func FormatSubject(journalID, volume string) string {
	journalID = strings.TrimSpace(journalID)
	volume = strings.TrimSpace(volume)
	switch {
	case journalID != "" && volume != "":
		if strings.HasPrefix(volume, journalID) {
			return volume
		}
		return journalID + "/" + volume
	case volume != "":
		return volume
	default:
		return journalID
	}
}
