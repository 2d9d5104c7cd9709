package contracts

import "strings"

// dependencyTypeTable maps well-known host suffixes to dependency type
// names, most specific first. The table is immutable; lookups allocate
// nothing.
var dependencyTypeTable = []struct {
	suffix string
	kind   string
}{
	{".blob.core.windows.net", "Azure blob"},
	{".table.core.windows.net", "Azure table"},
	{".queue.core.windows.net", "Azure queue"},
	{".database.windows.net", "SQL"},
	{".documents.azure.com", "Azure DocumentDB"},
	{".servicebus.windows.net", "Azure Service Bus"},
	{".vault.azure.net", "Azure Key Vault"},
}

// DependencyTypeForHost classifies an outbound call target by host name.
// Unrecognized hosts are plain HTTP dependencies.
func DependencyTypeForHost(host string) string {
	host = strings.ToLower(host)
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	for _, entry := range dependencyTypeTable {
		if strings.HasSuffix(host, entry.suffix) {
			return entry.kind
		}
	}
	return "Http"
}
