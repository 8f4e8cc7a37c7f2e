package models

// Alphabet is used for generated room passwords.
var Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const FingerprintHeader = "X-User-Fingerprint"
