package core

// Version is the client library version reported in the User-Agent.
const Version = "0.3.1"
