package cache

const KeyCatalogSnapshot = "catalog:snapshot"
