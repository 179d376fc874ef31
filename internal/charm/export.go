// ABOUTME: Backup and restore for Charm KV storage.
// ABOUTME: Shares the export format with the SQLite store so data migrates both ways.
package charm

import "github.com/harperreed/trackwise/internal/storage"

// GetAllData retrieves all data for export.
func (c *Client) GetAllData() (*storage.ExportData, error) {
	return storage.CollectData(c)
}

// ImportData imports data from an export, preserving record IDs.
func (c *Client) ImportData(data *storage.ExportData) error {
	return storage.RestoreData(c, data)
}
