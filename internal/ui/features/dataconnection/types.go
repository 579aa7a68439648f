package dataconnection

// FilesSignals are posted when the file input changes.
type FilesSignals struct {
	FilesNames []string `json:"filesNames"`
}

// URLSignals are posted by the URL connector.
type URLSignals struct {
	URL string `json:"url"`
}

// AzureSignals are posted by the Azure connector.
type AzureSignals struct {
	AzureResource string `json:"azureResource"`
}
